package rbac

const (
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RolePupil   = "pupil"
	RoleAdmin   = "admin"
)

const (
	PermGameView     = "game:view"
	PermGameViewKey  = "game:view-key" // unredacted metadata
	PermGameCreate   = "game:create"
	PermGameUpdate   = "game:update"
	PermGameDelete   = "game:delete"
	PermGameGenerate = "game:generate"
	PermPlayCreate   = "play:create"
	PermPlaySubmit   = "play:submit"
)

var RolePermissions = map[string][]string{
	RolePupil: {
		PermGameView,
		PermPlayCreate,
		PermPlaySubmit,
	},
	RoleParent: {
		PermGameView,
		PermPlayCreate,
		PermPlaySubmit,
	},
	RoleTeacher: {
		"game:*",
		"play:*",
	},
	RoleAdmin: {
		"*", // everything
	},
}

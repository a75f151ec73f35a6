package rbac

type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type CheckPermissionRequest struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type MyPermissionsResponse struct {
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

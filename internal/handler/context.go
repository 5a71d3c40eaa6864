package handler

type ContextKey string

var (
	RoleCtxKey ContextKey = "role"
	SubCtxKey  ContextKey = "sub"
	ShiftCtx   ContextKey = "shift"
	WeekCtx    ContextKey = "week"
)

package rbac

const (
	RoleHR       = "HR"
	RoleEmployee = "EMPLOYEE"
)

const (
	ResourceLeave    = "leave"
	ResourceLedger   = "ledger"
	ResourceEmployee = "employee"
	ResourceBalance  = "balance"
)

const (
	ActionApply    = "apply"
	ActionCancel   = "cancel"
	ActionDecide   = "decide"
	ActionAdjust   = "adjust"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionReadAll  = "read_all"
	ActionReadSelf = "read_self"
)

const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// DefaultPolicies is the static role table. HR inherits every EMPLOYEE grant.
var DefaultPolicies = [][]string{
	{RoleEmployee, ResourceLeave, ActionApply},
	{RoleEmployee, ResourceLeave, ActionCancel},
	{RoleEmployee, ResourceLeave, ActionReadSelf},
	{RoleEmployee, ResourceLedger, ActionReadSelf},
	{RoleEmployee, ResourceEmployee, ActionReadSelf},
	{RoleEmployee, ResourceBalance, ActionReadSelf},

	{RoleHR, ResourceLeave, ActionReadAll},
	{RoleHR, ResourceLeave, ActionDecide},
	{RoleHR, ResourceLedger, ActionReadAll},
	{RoleHR, ResourceLedger, ActionAdjust},
	{RoleHR, ResourceEmployee, ActionCreate},
	{RoleHR, ResourceEmployee, ActionReadAll},
	{RoleHR, ResourceEmployee, ActionUpdate},
	{RoleHR, ResourceBalance, ActionReadAll},
}

var DefaultGroupings = [][]string{
	{RoleHR, RoleEmployee},
}

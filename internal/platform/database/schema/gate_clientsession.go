package schema

// GateClientSessionTable represents the 'gate.client_session' table
type GateClientSessionTable struct {
	Table     string
	ClientID  string
	Token     string
	UserID    string
	UserRole  string
	UpdatedAt string
}

// GateClientSession is the schema definition for gate.client_session
var GateClientSession = GateClientSessionTable{
	Table:     "gate.client_session",
	ClientID:  "clientid",
	Token:     "token",
	UserID:    "userid",
	UserRole:  "userrole",
	UpdatedAt: "updatedat",
}

package schema

// GateClientScratchTable represents the 'gate.client_scratch' table
type GateClientScratchTable struct {
	Table     string
	ClientID  string
	Key       string
	Value     string
	UpdatedAt string
}

// GateClientScratch is the schema definition for gate.client_scratch
var GateClientScratch = GateClientScratchTable{
	Table:     "gate.client_scratch",
	ClientID:  "clientid",
	Key:       "key",
	Value:     "value",
	UpdatedAt: "updatedat",
}

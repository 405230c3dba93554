// Package drover holds the shared domain types of the drover control
// plane: node lifecycle states, the metadata projection served to
// clients, and the error taxonomy.
package drover

// State is the lifecycle state of a controlled node.
type State uint8

const (
	StateSpawned State = iota + 1
	StateInitialized
	StateStarted
	StateStopped
	StateCleanedUp
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateCleanedUp:
		return "cleaned-up"
	default:
		return "unknown"
	}
}

// SpawnSpec tells the factory how to construct a node instance. All
// fields are optional; an empty spec spawns a disposable node with the
// daemon's default binary.
type SpawnSpec struct {
	// Bin overrides the node binary configured on the daemon.
	Bin string `json:"bin,omitempty"`
	// Dir is the node's working directory. When empty the factory
	// allocates a temporary directory and the node becomes disposable:
	// the directory is removed on cleanup.
	Dir string `json:"dir,omitempty"`
	// Args are extra arguments passed to the daemon process.
	Args []string `json:"args,omitempty"`
	// Env is merged over the daemon's environment for all node processes.
	Env map[string]string `json:"env,omitempty"`
	// Config is an opaque configuration document handed to the factory
	// verbatim.
	Config map[string]any `json:"config,omitempty"`
}

// NodeInfo is the read-only metadata projection for one node. Absent
// addresses render as empty strings, never null.
type NodeInfo struct {
	Handle      string            `json:"handle"`
	State       string            `json:"state"`
	APIAddr     string            `json:"apiAddr"`
	GatewayAddr string            `json:"gatewayAddr"`
	RPCAddr     string            `json:"rpcAddr"`
	Disposable  bool              `json:"disposable"`
	Dir         string            `json:"dir"`
	Initialized bool              `json:"initialized"`
	Started     bool              `json:"started"`
	Env         map[string]string `json:"env"`
}

package consts

import "time"

// LifecycleState is the coarse lifecycle position of the orchestrated server process.
type LifecycleState string

const (
	StateUnstarted   LifecycleState = "UNSTARTED"
	StateInitialized LifecycleState = "INITIALIZED" // load phase completed
	StateRunning     LifecycleState = "RUNNING"     // start phase completed
	StateStopping    LifecycleState = "STOPPING"    // stop phase in flight
	StateStopped     LifecycleState = "STOPPED"
)

// Phase tags identify a pass over the initializers. They double as the tag handed
// to the failure escalator.
type Phase string

const (
	PhaseInitialize Phase = "initialize"
	PhaseStart      Phase = "start"
	PhaseStop       Phase = "stop"
)

// Environment variables understood by hestia.
const (
	EnvPrefix      = "HESTIA"
	EnvConfigPath  = "HESTIA_CONFIG"
	EnvServerID    = "HESTIA_SERVER_ID"
	EnvEnvironment = "HESTIA_ENVIRONMENT"

	// Set for children of the process kind that hold sockets, starting at fd 3.
	EnvListenFDs   = "HESTIA_LISTEN_FDS"
	EnvListenAddrs = "HESTIA_LISTEN_ADDRS"
)

// Defaults.
const (
	DefaultConfigFile  = "hestia.yaml"
	DefaultBuiltinRoot = "/usr/share/hestia/initializers"
	DefaultPIDFile     = "hestia.pid"
	DefaultEnvironment = "development"
	DefaultStatusAddr  = "127.0.0.1:9464"
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultFlushDelay  = 1 * time.Second
	DefaultDebounce    = 250 * time.Millisecond
)

// Plugin source layout. Legacy plugins ship initializers at their root, newer ones
// ship a compiled dist tree.
const (
	PluginLegacyDir = "initializers"
	PluginDistDir   = "dist/initializers"
)

// Personal.AI order the ending

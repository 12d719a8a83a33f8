package version

// Message constants
const (
	MsgShort = "Print version information"
	MsgLong  = "Print version information for modsync"
)

package config

const SourceFileExt = ".drift"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".drift", ".ts", ".js"}

// Built-in function names
const (
	PrintFuncName  = "print"
	LenFuncName    = "len"
	PushFuncName   = "push"
	StrFuncName    = "str"
	TypeOfFuncName = "typeOf"

	// Registered by the async runtime
	DelayFuncName    = "delay"
	ResolvedFuncName = "resolved"
	RejectedFuncName = "rejected"
)

// DefaultMaxCallDepth bounds synchronous call nesting.
const DefaultMaxCallDepth = 5000

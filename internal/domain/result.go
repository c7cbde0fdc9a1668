package domain

// Result is the immutable outcome of one retrieval attempt. Exactly one of
// FilePath and Err is meaningful, selected by Success.
type Result struct {
	// Success is true when a policy-compliant file was produced.
	Success bool

	// FilePath is the downloaded artifact. Ownership of the file passes to
	// the consumer of a successful Result, who must delete it after use.
	FilePath string

	// Err describes the failure. Its message is safe to surface to the user.
	Err error

	// Metadata carries whatever was resolved before the attempt ended. It is
	// empty when the failure happened before or outside metadata resolution.
	Metadata VideoMetadata
}

// Succeeded builds a successful Result handing file ownership to the caller.
func Succeeded(filePath string, meta VideoMetadata) Result {
	return Result{Success: true, FilePath: filePath, Metadata: meta}
}

// Failed builds a failed Result carrying the terminal error.
func Failed(err error, meta VideoMetadata) Result {
	return Result{Success: false, Err: err, Metadata: meta}
}

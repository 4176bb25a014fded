package usecase

// Status values carried by every workflow outcome.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Code identifies one member of the closed set of workflow outcomes.
// Every failure a workflow can produce maps to exactly one code;
// nothing escapes as an unhandled fault.
type Code string

const (
	CodeOK                     Code = "ok"
	CodeMissingInput           Code = "missing_input"
	CodeDecodeError            Code = "decode_error"
	CodeDetectorUnavailable    Code = "detector_unavailable"
	CodeNoFaceDetected         Code = "no_face_detected"
	CodeMultipleFacesDetected  Code = "multiple_faces_detected"
	CodeFaceTooDistant         Code = "face_too_distant"
	CodeDuplicateUsername      Code = "duplicate_username"
	CodeEncodingError          Code = "encoding_error"
	CodeUnknownLoginID         Code = "unknown_login_id"
	CodeIdentityMismatch       Code = "identity_mismatch"
	CodeStoredImageUnavailable Code = "stored_image_unavailable"
	CodeFaceMismatch           Code = "face_mismatch"
	CodeStorageError           Code = "storage_error"
)

// Outcome is the single result value every workflow returns. Status is
// the user-facing tag, Code refines it for programmatic callers, and
// Message is always specific and actionable.
type Outcome struct {
	Status   string
	Code     Code
	Message  string
	LoginID  string
	Redirect string
}

// Success reports whether the workflow completed.
func (o *Outcome) Success() bool {
	return o.Status == StatusSuccess
}

func succeed(message string) *Outcome {
	return &Outcome{Status: StatusSuccess, Code: CodeOK, Message: message}
}

func fail(code Code, message string) *Outcome {
	return &Outcome{Status: StatusError, Code: code, Message: message}
}

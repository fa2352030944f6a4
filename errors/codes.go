package errors

// ErrorCode identifies an application error class in API responses
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED      ErrorCode = 0
	ErrorCode_INTERNAL         ErrorCode = 1
	ErrorCode_INVALID_ARGUMENT ErrorCode = 2
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 5
	ErrorCode_CONFLICT         ErrorCode = 6
	ErrorCode_UNAUTHORIZED     ErrorCode = 7

	// Transcript pipeline
	ErrorCode_TRANSCRIPT_MALFORMED   ErrorCode = 100
	ErrorCode_TRANSCRIPT_NOT_FOUND   ErrorCode = 101
	ErrorCode_TRANSCRIPT_EMPTY       ErrorCode = 102
	ErrorCode_PROCESSING_FAILED      ErrorCode = 103
	ErrorCode_PATTERN_INVALID        ErrorCode = 110
	ErrorCode_PROFILE_NOT_FOUND      ErrorCode = 120
	ErrorCode_PROFILE_MERGE_CONFLICT ErrorCode = 121
	ErrorCode_IDENTITY_STORE_FAILED  ErrorCode = 122

	// Integrations
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 202
	ErrorCode_AI_TRANSCRIPTION_FAILED         ErrorCode = 210

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 300
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                     "UNSPECIFIED",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_CONFLICT:                        "CONFLICT",
	ErrorCode_UNAUTHORIZED:                    "UNAUTHORIZED",
	ErrorCode_TRANSCRIPT_MALFORMED:            "TRANSCRIPT_MALFORMED",
	ErrorCode_TRANSCRIPT_NOT_FOUND:            "TRANSCRIPT_NOT_FOUND",
	ErrorCode_TRANSCRIPT_EMPTY:                "TRANSCRIPT_EMPTY",
	ErrorCode_PROCESSING_FAILED:               "PROCESSING_FAILED",
	ErrorCode_PATTERN_INVALID:                 "PATTERN_INVALID",
	ErrorCode_PROFILE_NOT_FOUND:               "PROFILE_NOT_FOUND",
	ErrorCode_PROFILE_MERGE_CONFLICT:          "PROFILE_MERGE_CONFLICT",
	ErrorCode_IDENTITY_STORE_FAILED:           "IDENTITY_STORE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_AI_TRANSCRIPTION_FAILED:         "AI_TRANSCRIPTION_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

package errors

// ErrorCode identifies a class of failure; it is stable and safe to log.
type ErrorCode string

// Error is a coded application error. Message and data are optional;
// without a message the default text for the code is used.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

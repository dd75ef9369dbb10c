package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *WebfontsError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *WebfontsError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *WebfontsError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Theme settings errors

func ThemeSettingsNotFound(path string, cause error) *WebfontsError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "theme settings file not readable").
		WithContext("path", path)
}

func ThemeSettingsInvalid(path string, cause error) *WebfontsError {
	return Wrap(cause, CategoryTheme, SeverityFatal, "theme settings could not be parsed").
		WithContext("path", path)
}

// Registration errors

func SinkUnavailable(sink string, cause error) *WebfontsError {
	return WrapRetryable(cause, CategoryNetwork, SeverityError, "registration sink unavailable").
		WithContext("sink", sink)
}

func RegistrationFailed(sink string, cause error) *WebfontsError {
	return Wrap(cause, CategoryRegistry, SeverityError, "font face registration failed").
		WithContext("sink", sink)
}

// Internal errors

func InternalError(message string, cause error) *WebfontsError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}

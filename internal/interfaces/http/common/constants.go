package common

const (
	// MaxRequestBody limits JSON request bodies for all endpoints.
	MaxRequestBody = 1 << 20
	// MaxUpsellLines caps the number of line entries per submission.
	MaxUpsellLines = 50
	// MaxEmployeeNameRunes keeps clock-in names within display limits.
	MaxEmployeeNameRunes = 60
)

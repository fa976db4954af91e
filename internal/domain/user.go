package domain

// Phone is one entry of a user's phone list: a caller-chosen label
// ("Home", "Mobile", ...) and the number. The list is ordered; labels must be
// unique per user but carry no meaning for the provider.
type Phone struct {
	Name   string
	Number string
}

// DeviceInfo describes a provider-enrolled authentication device as returned
// on device-initiated retrievals.
type DeviceInfo struct {
	DeviceID string
	Category string
	Verified bool
}

// ABOUTME: Version information for WordBuddy
// ABOUTME: Product identity shared by the app, speaker and mDNS records
package version

const (
	// Version is the WordBuddy release
	Version = "0.3.0"

	// Product is the product name reported to speakers
	Product = "WordBuddy"

	// Manufacturer identifies the maker
	Manufacturer = "harperreed"
)

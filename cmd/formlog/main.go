// Command formlog manages the form log from the command line.
//
// Usage:
//
//	# Export entries of one form through the "contacts" profile
//	formlog export --profile contacts --identifier contact --out-dir /var/exports
//
//	# Delete entries older than 90 days
//	formlog purge --days 90
//
//	# Create the database schema
//	formlog migrate
//
//	# Check an export profile file
//	formlog profiles --file profiles.yaml --lang de
package main

func main() {
	Execute()
}

// Package sheets appends confirmed bookings to a Google Sheets spreadsheet.
//
// Each booking becomes one row with the columns
//
//	booked_at | full_name | email | phone | business_type | start | end | event_id | notes
//
// Values are written with the RAW input option, so caller supplied text is
// stored as typed and never evaluated as a formula.
package sheets

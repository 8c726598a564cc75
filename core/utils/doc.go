// Package utils provides small helpers shared by the commands and the HTTP
// API: lenient boolean parsing and count formatting for summaries.
package utils

// Package render turns markdown message bodies into plain terminal text.
package render

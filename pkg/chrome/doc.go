// Package chrome provides the small backend helpers every view uses: URL
// building against the current request, icon markup and redirects.
package chrome

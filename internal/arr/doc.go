// Package arr queries Radarr and Sonarr for the file each considers
// canonical for a title, and resolves that answer into a candidate override
// for duplicate resolution. Lookup failures are never fatal: any error or
// empty response simply means no override.
package arr

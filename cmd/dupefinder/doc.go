// Command dupefinder scans a Plex library for duplicate movies and
// episodes, scores each copy, and deletes the losers interactively or
// automatically.
package main

// Package fileutil holds the small set of file helpers simenv needs to lay
// out environment data directories: recursive directory creation, existence
// checks and an atomic copy used to clone platform template databases.
package fileutil

package domain

import "strings"

// NormalizePath lowercases p and converts backslashes to forward slashes,
// giving a platform-independent form for marker matching.
func NormalizePath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
}

// NormalizeDir is NormalizePath without trailing slashes.
func NormalizeDir(d string) string {
	return strings.TrimRight(NormalizePath(d), "/")
}

// UnderDir reports whether the normalized path equals or lies below the normalized dir.
func UnderDir(normPath, normDir string) bool {
	if normDir == "" {
		return false
	}
	return normPath == normDir || strings.HasPrefix(normPath, normDir+"/")
}

// BaseName returns the last element of a normalized path.
func BaseName(normPath string) string {
	if i := strings.LastIndexByte(normPath, '/'); i >= 0 {
		return normPath[i+1:]
	}
	return normPath
}

// Ext returns the extension of a base name, including the dot.
func Ext(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

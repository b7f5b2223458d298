package policy

import (
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// Markers shared by every platform. Paths are compared after
// domain.NormalizePath, so everything here is lowercase with forward slashes.
var (
	cacheMarkers = []string{"cache", "_cacache", "thumbcache", "caches"}

	devMarkers = []domain.CategoryMarker{
		{Marker: "/node_modules/", Category: domain.CategoryDevDependencies},
		{Marker: "/bower_components/", Category: domain.CategoryDevDependencies},
		{Marker: "/bin/debug/", Category: domain.CategoryBuildOutput},
		{Marker: "/bin/release/", Category: domain.CategoryBuildOutput},
		{Marker: "/obj/", Category: domain.CategoryBuildOutput},
		{Marker: "/target/debug/", Category: domain.CategoryBuildOutput},
		{Marker: "/target/release/", Category: domain.CategoryBuildOutput},
		{Marker: "/.m2/repository/", Category: domain.CategoryDevCache},
		{Marker: "/go/pkg/mod/", Category: domain.CategoryDevCache},
		{Marker: "/.cargo/registry/", Category: domain.CategoryDevCache},
		{Marker: "/.nuget/packages/", Category: domain.CategoryDevCache},
		{Marker: "/.gradle/wrapper/dists/", Category: domain.CategoryDevCache},
		{Marker: "/.conda/pkgs/", Category: domain.CategoryDevCache},
	}

	// Thumbnail caches written by file managers. Matched against the full
	// path, so a photo merely named "..._thumbnail.jpg" is not one.
	thumbnailMarkers = []string{"/thumbs.db", "/ehthumbs.db", "/ehthumbs_vista.db", "/.thumbnails/"}
	thumbnailExts    = []string{".db", ".jpg", ".jpeg", ".png", ".webp", ".bmp"}

	// Checked in order after the absolute temp and trash dirs.
	locationMarkers = []domain.CategoryMarker{
		{Marker: "/temp/", Category: domain.CategoryTemp},
		{Marker: "/$recycle.bin/", Category: domain.CategoryRecycle},
		{Marker: "/.trash/", Category: domain.CategoryRecycle},
		{Marker: "/.trashes/", Category: domain.CategoryRecycle},
		{Marker: "/.local/share/trash/", Category: domain.CategoryRecycle},
		{Marker: "/downloads/", Category: domain.CategoryDownloads},
	}

	backupMarkers    = []string{"backup"}
	crashDumpMarkers = []string{"crashdump", "minidump", "/crashes/", "/crash reports/", "/diagnosticreports/", "/coredump/"}

	executableExts    = []string{".exe", ".com", ".bat", ".cmd", ".scr", ".appimage", ".run"}
	installerKeywords = []string{"setup", "install", "update", "patch"}

	modelKeywords = []string{"model", "weights"}
	sharedLibExts = []string{".dll", ".sys", ".so", ".dylib", ".drv", ".ocx", ".ko", ".cpl"}

	safeMarkers = []string{
		"/.cache/",
		"/cache/",
		"/caches/",
		"/_cacache/",
		"/npm-cache/",
		"/__pycache__/",
		"/inetcache/",
		"/temp/",
		"/logs/",
		"/log/",
		"/crashdumps/",
		"/crash reports/",
		"/diagnosticreports/",
		"/minidump/",
		"/$recycle.bin/",
		"/.trash/",
		"/.local/share/trash/",
		"/thumbs.db",
		"/ehthumbs.db",
		"/ehthumbs_vista.db",
		"/.thumbnails/",
	}

	userMarkers = []string{
		"/downloads/",
		"/documents/",
		"/desktop/",
		"/pictures/",
		"/photos/",
		"/videos/",
		"/movies/",
		"/music/",
		"/steamapps/",
		"/epic games/",
		"/gog galaxy/",
		"/saved games/",
		"/my games/",
		"/battle.net/",
	}

	// Matched against the part of a directory path below its scan root.
	scanExclusions = []string{"/appdata/local/microsoft/windows", "/ntuser", "/$recycle.bin"}
)

// extensionsByCategory is the static extension table, indexed by category.
var extensionsByCategory = map[domain.Category][]string{
	domain.CategoryMedia: {
		".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg",
		".mp3", ".flac", ".wav", ".aac", ".ogg", ".m4a", ".wma",
	},
	domain.CategoryImages: {
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".heic", ".webp", ".svg",
		".raw", ".cr2", ".nef", ".arw", ".dng", ".psd",
	},
	domain.CategoryDocuments: {
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt", ".ods", ".odp",
		".txt", ".rtf", ".md", ".csv", ".epub",
	},
	domain.CategoryArchives: {
		".zip", ".rar", ".7z", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".zst", ".lz4",
	},
	domain.CategoryTemp:       {".tmp", ".temp", ".swp", ".part", ".crdownload", ".partial"},
	domain.CategoryBackups:    {".bak", ".old", ".backup"},
	domain.CategoryInstallers: {".msi", ".msix", ".appx", ".dmg", ".pkg", ".deb", ".rpm"},
	domain.CategoryVirtual:    {".vmdk", ".vdi", ".vhd", ".vhdx", ".qcow2", ".iso", ".img", ".ova", ".ovf"},
	domain.CategoryModels:     {".gguf", ".ggml", ".safetensors", ".ckpt", ".pt", ".pth", ".onnx", ".h5", ".tflite"},
	domain.CategoryCrashDumps: {".dmp", ".mdmp", ".hdmp", ".crash", ".hprof", ".core"},
}

var extensionIndex map[string]domain.Category

func init() {
	idx, err := buildExtensionIndex(extensionsByCategory)
	if err != nil {
		panic(err)
	}
	extensionIndex = idx
}

// buildExtensionIndex inverts the table, rejecting unknown categories,
// malformed extensions and extensions listed under two categories.
func buildExtensionIndex(table map[domain.Category][]string) (map[string]domain.Category, error) {
	idx := make(map[string]domain.Category)
	for cat, exts := range table {
		if !cat.Valid() {
			return nil, fmt.Errorf("extension table: %w: %d", domain.ErrUnknownCategory, int(cat))
		}
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") || ext != strings.ToLower(ext) {
				return nil, fmt.Errorf("extension table: malformed extension %q", ext)
			}
			if prev, dup := idx[ext]; dup {
				return nil, fmt.Errorf("extension table: %s listed under %s and %s", ext, prev, cat)
			}
			idx[ext] = cat
		}
	}
	return idx, nil
}

// ExtensionIndex returns a copy of the extension-to-category lookup.
func ExtensionIndex() map[string]domain.Category {
	out := make(map[string]domain.Category, len(extensionIndex))
	for k, v := range extensionIndex {
		out[k] = v
	}
	return out
}

// Package classify maps file names and paths to study-material metadata.
// Classification is purely lexical: suffix rules for the type, ordered
// substring rules for the material label, the first path segment for the
// subject. Nothing here touches the filesystem.
package classify

import (
	"regexp"
	"strings"
)

// Type is the kind of study material a file holds.
type Type string

const (
	TypePDF   Type = "pdf"
	TypeAudio Type = "audio"
	// TypeNone marks files that are not study material and must be dropped.
	TypeNone Type = ""
)

// AudioExtensions is the fixed set of recognized audio suffixes.
var AudioExtensions = []string{".mp3", ".m4a", ".aac", ".wav", ".ogg"}

// speedVariantMarkers flag alternate-speed renditions of an already
// included track. Matched after stripping internal whitespace.
var speedVariantMarkers = []string{"1.5倍速", "2倍速", "1.5x", "2x"}

var whitespaceRE = regexp.MustCompile(`\s+`)

// DetectType classifies a file name or path by its lower-cased suffix.
// Audio files whose name carries a speed-variant marker return TypeNone:
// they duplicate a normal-speed track and must not become library entries.
// The exclusion is type-specific; a PDF with the same marker is kept.
func DetectType(nameOrPath string) Type {
	lower := strings.ToLower(nameOrPath)
	if strings.HasSuffix(lower, ".pdf") {
		return TypePDF
	}
	for _, ext := range AudioExtensions {
		if strings.HasSuffix(lower, ext) {
			if IsSpeedVariant(nameOrPath) {
				return TypeNone
			}
			return TypeAudio
		}
	}
	return TypeNone
}

// DetectTypeFromMime classifies by a declared content type. Used by the
// file-selection source as a fallback when the display name has no usable
// suffix; the directory and archive sources never consult MIME.
func DetectTypeFromMime(mime string) Type {
	if mime == "" {
		return TypeNone
	}
	lower := strings.ToLower(mime)
	if lower == "application/pdf" {
		return TypePDF
	}
	if strings.HasPrefix(lower, "audio/") {
		return TypeAudio
	}
	return TypeNone
}

// IsSpeedVariant reports whether a name marks an alternate-speed rendition.
func IsSpeedVariant(name string) bool {
	normalized := whitespaceRE.ReplaceAllString(name, "")
	for _, marker := range speedVariantMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// SubjectUnclassified is assigned when a path has no directory component.
const SubjectUnclassified = "未分類"

// Subject derives the subject from the first path segment. A bare
// filename has no directory component and falls back to 未分類.
func Subject(path string) string {
	first, _, found := strings.Cut(path, "/")
	if !found || first == "" {
		return SubjectUnclassified
	}
	return first
}

// materialRule is one ordered predicate over name+path.
type materialRule struct {
	substr string
	label  string
}

// Ordered: the first match wins even when several substrings are present.
var materialRules = []materialRule{
	{"スマート問題集", "スマート問題集"},
	{"セレクト過去問", "セレクト過去問"},
	{"選択式ポイント問題集", "選択式ポイント問題集"},
	{"合格戦略講座", "合格戦略講座"},
	{"全文", "法令全文"},
}

const (
	// MaterialAudioLecture labels any audio item and named audio-lecture files.
	MaterialAudioLecture = "音声講義"
	// MaterialLectureText is the default label when no rule matches.
	MaterialLectureText = "講義テキスト"
)

// Material derives the content-category label from the ordered rule list
// evaluated against "name path".
func Material(name, path string, t Type) string {
	target := name + " " + path
	for _, rule := range materialRules {
		if strings.Contains(target, rule.substr) {
			return rule.label
		}
	}
	if t == TypeAudio || strings.Contains(target, "音声講座") || strings.Contains(target, "_音声") {
		return MaterialAudioLecture
	}
	return MaterialLectureText
}

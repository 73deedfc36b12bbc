package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Type
	}{
		{"pdf lower", "lecture.pdf", TypePDF},
		{"pdf upper suffix", "lecture.PDF", TypePDF},
		{"pdf nested path", "労働基準法/第1回.pdf", TypePDF},
		{"mp3", "lecture.mp3", TypeAudio},
		{"m4a", "講義.M4A", TypeAudio},
		{"aac", "a.aac", TypeAudio},
		{"wav", "a.wav", TypeAudio},
		{"ogg", "a.ogg", TypeAudio},
		{"unknown extension", "notes.txt", TypeNone},
		{"no extension", "README", TypeNone},
		{"pdf substring not suffix", "report.pdf.bak", TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.input))
		})
	}
}

func TestDetectTypeCaseInsensitive(t *testing.T) {
	assert.Equal(t, DetectType("x.pdf"), DetectType("x.PDF"))
	assert.Equal(t, DetectType("x.mp3"), DetectType("x.Mp3"))
}

func TestSpeedVariantExclusion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Type
	}{
		{"1.5x japanese marker", "第1回_1.5倍速.mp3", TypeNone},
		{"2x japanese marker", "第1回 2倍速.mp3", TypeNone},
		{"1.5x ascii marker", "lecture_1.5x.mp3", TypeNone},
		{"2x ascii marker", "lecture 2x.m4a", TypeNone},
		{"marker split by whitespace", "第1回 1.5 倍速.mp3", TypeNone},
		{"normal speed audio kept", "第1回.mp3", TypeAudio},
		// Exclusion only suppresses audio, never pdf.
		{"pdf with marker kept", "第1回_1.5倍速.pdf", TypePDF},
		{"pdf with 2x marker kept", "note 2倍速.pdf", TypePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.input))
		})
	}
}

func TestDetectTypeFromMime(t *testing.T) {
	assert.Equal(t, TypePDF, DetectTypeFromMime("application/pdf"))
	assert.Equal(t, TypePDF, DetectTypeFromMime("Application/PDF"))
	assert.Equal(t, TypeAudio, DetectTypeFromMime("audio/mpeg"))
	assert.Equal(t, TypeAudio, DetectTypeFromMime("audio/mp4"))
	assert.Equal(t, TypeNone, DetectTypeFromMime("video/mp4"))
	assert.Equal(t, TypeNone, DetectTypeFromMime(""))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "労働基準法", Subject("労働基準法/第1回.pdf"))
	assert.Equal(t, "Math", Subject("Math/deep/nested.pdf"))
	assert.Equal(t, SubjectUnclassified, Subject("lecture.pdf"))
	assert.Equal(t, SubjectUnclassified, Subject(""))
}

func TestMaterialOrderedRules(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		path     string
		typ      Type
		want     string
	}{
		{"smart quiz", "スマート問題集01.pdf", "労基/スマート問題集01.pdf", TypePDF, "スマート問題集"},
		{"select past exams", "セレクト過去問.pdf", "labor/セレクト過去問.pdf", TypePDF, "セレクト過去問"},
		{"selective point quiz", "選択式ポイント問題集.pdf", "a/b.pdf", TypePDF, "選択式ポイント問題集"},
		{"strategy course", "合格戦略講座1.pdf", "x/y.pdf", TypePDF, "合格戦略講座"},
		{"full statute text", "労基法全文.pdf", "労基/全文.pdf", TypePDF, "法令全文"},
		{"audio defaults to audio lecture", "第1回.mp3", "労基/第1回.mp3", TypeAudio, MaterialAudioLecture},
		{"named audio course pdf", "音声講座テキスト.pdf", "a/b.pdf", TypePDF, MaterialAudioLecture},
		{"underscore audio marker", "第1回_音声.pdf", "a/b.pdf", TypePDF, MaterialAudioLecture},
		{"default lecture text", "第1回.pdf", "労基/第1回.pdf", TypePDF, MaterialLectureText},
		// First match wins when several substrings are present.
		{"priority over audio", "スマート問題集_音声.mp3", "a/b.mp3", TypeAudio, "スマート問題集"},
		{"priority among text rules", "セレクト過去問 全文.pdf", "a/b.pdf", TypePDF, "セレクト過去問"},
		// The path contributes to matching, not just the name.
		{"match via path only", "第1回.pdf", "合格戦略講座/第1回.pdf", TypePDF, "合格戦略講座"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Material(tt.fileName, tt.path, tt.typ))
		})
	}
}

func TestIsSpeedVariant(t *testing.T) {
	assert.True(t, IsSpeedVariant("1.5倍速"))
	assert.True(t, IsSpeedVariant("1 . 5 倍 速")) // whitespace stripped before matching
	assert.False(t, IsSpeedVariant("第1回"))
	assert.False(t, IsSpeedVariant(""))
}

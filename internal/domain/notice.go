package domain

import (
	"fmt"

	"golang.org/x/text/language"
)

// NoticeKey identifies a user-facing message.
type NoticeKey string

const (
	NoticeBusy             NoticeKey = "busy"
	NoticeEmptyQuery       NoticeKey = "empty_query"
	NoticeDialogTitle      NoticeKey = "dialog_title"
	NoticeGenerationFailed NoticeKey = "generation_failed"
)

var supportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(supportedLocales)

var notices = map[string]map[NoticeKey]string{
	"en": {
		NoticeBusy:             "Task running please wait",
		NoticeEmptyQuery:       "Query can't be empty",
		NoticeDialogTitle:      "Text to image",
		NoticeGenerationFailed: "Generation failed: %s",
	},
	"id": {
		NoticeBusy:             "Tugas sedang berjalan, mohon tunggu",
		NoticeEmptyQuery:       "Kueri tidak boleh kosong",
		NoticeDialogTitle:      "Teks ke gambar",
		NoticeGenerationFailed: "Pembuatan gambar gagal: %s",
	},
}

// NormalizeLocale maps an arbitrary BCP 47 string onto a supported locale.
func NormalizeLocale(locale string) string {
	tag, _ := language.MatchStrings(localeMatcher, locale)
	base, _ := tag.Base()
	if _, ok := notices[base.String()]; ok {
		return base.String()
	}
	return "en"
}

// Notice returns the localized text for key. Extra args are applied with fmt.Sprintf.
func Notice(locale string, key NoticeKey, args ...any) string {
	table := notices[NormalizeLocale(locale)]
	text, ok := table[key]
	if !ok {
		text = notices["en"][key]
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// NoticeForError maps submission errors to their notice key.
func NoticeForError(err error) (NoticeKey, bool) {
	switch err {
	case ErrBusy:
		return NoticeBusy, true
	case ErrEmptyQuery:
		return NoticeEmptyQuery, true
	}
	return "", false
}

package book

import (
	"regexp"
	"strconv"
	"strings"

	"lectopus/internal/platform/googlebooks"
	"lectopus/internal/platform/openlibrary"
)

// OpenLibraryPrefix marks ids that belong to OpenLibrary works.
const OpenLibraryPrefix = "ol:"

var (
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	spaceBeforeNewline = regexp.MustCompile(`\s+\n`)
)

// StripHTML removes markup from a description.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spaceBeforeNewline.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// FromVolume normalises a Google Books volume.
func FromVolume(v googlebooks.Volume) Book {
	info := v.VolumeInfo

	cover := info.ImageLinks.Thumbnail
	if cover == "" {
		cover = info.ImageLinks.SmallThumbnail
	}

	description := info.Description
	if description == "" {
		description = v.SearchInfo.TextSnippet
	}

	return Book{
		ID:            v.ID,
		Title:         titleOrUnknown(info.Title),
		Authors:       info.Authors,
		CoverURL:      coverOrFallback(cover),
		PublishedYear: yearOf(info.PublishedDate),
		Description:   StripHTML(description),
		Categories:    info.Categories,
		PageCount:     info.PageCount,
		Publisher:     info.Publisher,
		Language:      info.Language,
		PreviewLink:   secure(info.PreviewLink),
		Source:        SourceGoogleBooks,
	}
}

// FromSearchDoc normalises an OpenLibrary search hit. coverURL is the
// resolved cover image, empty when the work has none.
func FromSearchDoc(doc openlibrary.Doc, coverURL string) Book {
	b := Book{
		ID:         OpenLibraryPrefix + strings.TrimPrefix(doc.Key, "/works/"),
		Title:      titleOrUnknown(doc.Title),
		Authors:    doc.AuthorNames,
		CoverURL:   coverOrFallback(coverURL),
		Categories: doc.Subjects,
		PageCount:  doc.NumberOfPages,
		Source:     SourceOpenLibrary,
	}
	if doc.FirstPublishYear > 0 {
		b.PublishedYear = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.Publishers) > 0 {
		b.Publisher = doc.Publishers[0]
	}
	if len(doc.Language) > 0 {
		b.Language = doc.Language[0]
	}
	return b
}

// IsOpenLibraryID reports whether id was produced by FromSearchDoc.
func IsOpenLibraryID(id string) bool {
	return strings.HasPrefix(id, OpenLibraryPrefix)
}

func titleOrUnknown(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Unknown"
	}
	return title
}

func coverOrFallback(u string) string {
	if u == "" {
		return FallbackCoverURL
	}
	return secure(u)
}

func secure(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// yearOf returns the leading four digits of a publication date.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return date[:4]
}

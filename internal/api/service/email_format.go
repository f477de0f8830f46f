package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ConvertToArrayLines splits on '\n' and always returns at least one line. A trailing '\r' is dropped from each line.
func ConvertToArrayLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func IMGTagForEmbeddedAttachment(attachment string, width, height int) string {
	return fmt.Sprintf("<img width = %d height = %d id = \"1\" src = \"cid:%s\">\n", width, height, attachment)
}

func IMGTagForOnlineAttachment(url string, width, height int) string {
	return fmt.Sprintf("<img width = %d height = %d src = \"%s\">\n", width, height, url)
}

// HTMLForEmbeddedAttachment wraps a cid image reference in a minimal page with breaksBefore and breaksAfter line breaks around it
func HTMLForEmbeddedAttachment(attachment string, width, height, breaksBefore, breaksAfter int) string {
	return htmlPage(IMGTagForEmbeddedAttachment(attachment, width, height), breaksBefore, breaksAfter)
}

func HTMLForOnlineAttachment(url string, width, height, breaksBefore, breaksAfter int) string {
	return htmlPage(IMGTagForOnlineAttachment(url, width, height), breaksBefore, breaksAfter)
}

func htmlPage(img string, breaksBefore, breaksAfter int) string {
	var sb strings.Builder
	sb.WriteString("<html>\n<head>\n</head>\n<body>\n")
	for i := 0; i < breaksBefore; i++ {
		sb.WriteString("</br>\n")
	}
	sb.WriteString(img)
	for i := 0; i < breaksAfter; i++ {
		sb.WriteString("</br>\n")
	}
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// letters NFD cannot split into base + mark
var foldedLetters = strings.NewReplacer(
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Ø", "O", "ø", "o",
	"Đ", "D", "đ", "d",
	"Ł", "L", "ł", "l",
	"ß", "ss",
)

// ReplaceDiacritics strips accents so the text is safe for us-ascii mail headers
func ReplaceDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return foldedLetters.Replace(out)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToArrayLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{""}},
		{"single", "hello", []string{"hello"}},
		{"unix", "a\nb", []string{"a", "b"}},
		{"windows", "a\r\nb\r\n", []string{"a", "b", ""}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertToArrayLines(tt.in))
		})
	}
}

func TestIMGTags(t *testing.T) {
	assert.Equal(t, "<img width = 320 height = 200 id = \"1\" src = \"cid:chart.png\">\n",
		IMGTagForEmbeddedAttachment("chart.png", 320, 200))
	assert.Equal(t, "<img width = 64 height = 64 src = \"https://cdn.example.com/logo.png\">\n",
		IMGTagForOnlineAttachment("https://cdn.example.com/logo.png", 64, 64))
}

func TestHTMLForAttachment(t *testing.T) {
	want := "<html>\n<head>\n</head>\n<body>\n" +
		"</br>\n" +
		"<img width = 10 height = 20 id = \"1\" src = \"cid:a.png\">\n" +
		"</br>\n</br>\n" +
		"</body>\n</html>\n"
	assert.Equal(t, want, HTMLForEmbeddedAttachment("a.png", 10, 20, 1, 2))

	want = "<html>\n<head>\n</head>\n<body>\n" +
		"<img width = 1 height = 1 src = \"http://x/y.gif\">\n" +
		"</body>\n</html>\n"
	assert.Equal(t, want, HTMLForOnlineAttachment("http://x/y.gif", 1, 1, 0, 0))
}

func TestReplaceDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Crème Brûlée", "Creme Brulee"},
		{"Straße", "Strasse"},
		{"Łódź", "Lodz"},
		{"Æsir Œuvre Ørsted", "AEsir OEuvre Orsted"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplaceDiacritics(tt.in))
		})
	}
}

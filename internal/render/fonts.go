package render

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

type fontSpec struct {
	family string
	style  string
	file   string
	data   []byte
}

// Fonts that may be named in render settings. Entries with a file are read
// from the assets dir; entries with neither file nor data are PDF core fonts.
var fontTable = map[string]fontSpec{
	"Poppins Bold":   {family: "Poppins", style: "B", file: "static/Poppins-Bold.ttf"},
	"Go Bold":        {family: "Go", style: "B", data: gobold.TTF},
	"Helvetica":      {family: "Helvetica"},
	"Helvetica Bold": {family: "Helvetica", style: "B"},
	"Times":          {family: "Times"},
	"Times Bold":     {family: "Times", style: "B"},
	"Courier":        {family: "Courier"},
}

// fallbackFace is compiled in, so it is always available and draws UTF-8 text.
var fallbackFace = pdf.FontFace{Family: "Go", Style: "B", Data: gobold.TTF}

// FontNames lists the names accepted in render settings.
func FontNames() []string {
	names := make([]string, 0, len(fontTable))
	for name := range fontTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fontLoader struct {
	assetsDir string
	logger    *zap.Logger
}

// face resolves a font name. Unknown names use the default font; a font file
// that cannot be read is replaced by the bundled fallback.
func (l *fontLoader) face(name string) pdf.FontFace {
	spec, ok := fontTable[name]
	if !ok {
		spec = fontTable[settings.DefaultFontName]
	}
	if spec.file == "" {
		return pdf.FontFace{Family: spec.family, Style: spec.style, Data: spec.data}
	}

	data, err := os.ReadFile(filepath.Join(l.assetsDir, spec.file))
	if err != nil {
		l.logger.Warn("Font file unavailable, using bundled font",
			zap.String("font", name),
			zap.String("fallback", fallbackFace.Family),
			zap.Error(err))
		return fallbackFace
	}
	return pdf.FontFace{Family: spec.family, Style: spec.style, Data: data}
}

func sameFace(a, b pdf.FontFace) bool {
	return a.Family == b.Family && a.Style == b.Style
}

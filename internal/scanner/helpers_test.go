package scanner

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestDOCX creates a minimal docx archive in memory.
func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// writeFile creates path (and parents) under root with the given content.
func writeFile(t *testing.T, root, path string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

const wordDocument = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Refund </w:t></w:r><w:r><w:t>policy</w:t></w:r></w:p>
<w:p><w:r><w:t>   </w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">  Items can be returned within 30 days.  </w:t></w:r></w:p>
</w:body>
</w:document>`

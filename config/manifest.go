package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kgrange/thumb-emulator/parser"
)

// Manifest is the project manifest read from <dir>config.json: the ordered
// list of compilation units and the per-instruction debug delay in
// milliseconds. A missing manifest defaults to compiling main.s with no
// delay.
type Manifest struct {
	Files []string `json:"files"`
	Delay uint16   `json:"delay"`

	dirPath string
}

// LoadManifest reads the manifest from the project directory (dirPath must
// end with the path separator). A malformed manifest is a compile error
// carrying the decoder's message.
func LoadManifest(dirPath string) (*Manifest, []string) {
	m := &Manifest{dirPath: dirPath}

	content, err := os.ReadFile(dirPath + "config.json")
	if err != nil {
		// No manifest: default configuration.
		m.Files = []string{"main.s"}
		return m, nil
	}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, []string{fmt.Sprintf("Configuration Error in \"config.json\" %s", err)}
	}
	if len(m.Files) == 0 {
		return nil, []string{"Configuration Error in \"config.json\" missing field `files`"}
	}
	return m, nil
}

// ReadContents loads every compilation unit in manifest order.
func (m *Manifest) ReadContents() ([]parser.SourceFile, []string) {
	files := make([]parser.SourceFile, 0, len(m.Files))
	for _, name := range m.Files {
		content, err := os.ReadFile(m.dirPath + name)
		if err != nil {
			return nil, []string{fmt.Sprintf("Couldn't find the file %q in directory: %s", name, m.dirPath)}
		}
		files = append(files, parser.SourceFile{Name: name, Content: string(content)})
	}
	return files, nil
}

package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// DocumentPart is the primary XML part of a DOCX container, holding the
// document body.
const DocumentPart = "word/document.xml"

// Container is an ordered path→bytes view of an OOXML ZIP archive. Entry
// paths are unique; decoding keeps the archive's entry order so that
// encode/decode round-trips are stable.
type Container struct {
	names []string
	parts map[string][]byte
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{parts: make(map[string][]byte)}
}

// DecodeContainer parses a ZIP archive into a container. It returns an
// error wrapping ErrCorruptArchive when the bytes are not a valid ZIP
// structure.
func DecodeContainer(data []byte) (*Container, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	c := NewContainer()
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrCorruptArchive, file.Name, err)
		}

		content, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrCorruptArchive, file.Name, err)
		}

		c.SetPart(file.Name, content)
	}

	return c, nil
}

// Part returns the bytes stored at the given path.
func (c *Container) Part(name string) ([]byte, bool) {
	data, ok := c.parts[name]
	return data, ok
}

// SetPart stores bytes at the given path, replacing an existing part in
// place so that entry order is preserved.
func (c *Container) SetPart(name string, data []byte) {
	if _, ok := c.parts[name]; !ok {
		c.names = append(c.names, name)
	}
	c.parts[name] = data
}

// Names returns the entry paths in archive order.
func (c *Container) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Len returns the number of parts.
func (c *Container) Len() int {
	return len(c.names)
}

// Encode serializes the container back into a ZIP archive using deflate
// compression. Part contents are written exactly as stored.
func (c *Container) Encode() ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, name := range c.names {
		writer, err := zipWriter.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create entry %s: %w", name, err)
		}

		if _, err := writer.Write(c.parts[name]); err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

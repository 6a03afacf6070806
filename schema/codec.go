package schema

import (
	"fmt"

	"github.com/viant/bintly"
)

// EncodeBinary encodes the document to a bintly stream.
func (d *Document) EncodeBinary(stream *bintly.Writer) error {
	stream.String(d.Category)
	stream.String(d.Title)
	stream.String(d.Content)
	stream.String(d.Source)
	stream.Int(d.ChunkID)
	stream.String(d.FilePath)
	if d.Scores == nil {
		stream.Int16(0)
		return nil
	}
	stream.Int16(1)
	stream.Float64(d.Scores.Relevance)
	stream.Float64(d.Scores.CategoryConfidence)
	return nil
}

// DecodeBinary decodes the document from a bintly stream.
func (d *Document) DecodeBinary(stream *bintly.Reader) error {
	stream.String(&d.Category)
	stream.String(&d.Title)
	stream.String(&d.Content)
	stream.String(&d.Source)
	stream.Int(&d.ChunkID)
	stream.String(&d.FilePath)
	var scored int16
	stream.Int16(&scored)
	if scored == 0 {
		d.Scores = nil
		return nil
	}
	d.Scores = &Scores{}
	stream.Float64(&d.Scores.Relevance)
	stream.Float64(&d.Scores.CategoryConfidence)
	return nil
}

// Documents is a bintly-codable document list.
type Documents []Document

// EncodeBinary encodes all documents preceded by their count.
func (d Documents) EncodeBinary(stream *bintly.Writer) error {
	stream.Int(len(d))
	for i := range d {
		if err := d[i].EncodeBinary(stream); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBinary decodes a document list.
func (d *Documents) DecodeBinary(stream *bintly.Reader) error {
	var size int
	stream.Int(&size)
	if size < 0 {
		return fmt.Errorf("invalid document count %d", size)
	}
	out := make(Documents, 0, min(size, 1024))
	for i := 0; i < size; i++ {
		var doc Document
		if err := doc.DecodeBinary(stream); err != nil {
			return err
		}
		out = append(out, doc)
	}
	*d = out
	return nil
}

package overlay

import "github.com/mrlokans/wordhoard/internal/tokenizer"

// Span is a run of the original text. Word spans carry their token and
// status; separator spans have an empty Word.
type Span struct {
	Text    string `json:"text"`
	Word    string `json:"word,omitempty"`
	Status  Status `json:"status,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// Spans returns the document text split into word and separator runs, each
// word annotated the same way as in Annotations.
func (r *Reading) Spans() []Span {
	segs := tokenizer.Segments(r.Text)
	spans := make([]Span, 0, len(segs))
	for _, seg := range segs {
		span := Span{Text: seg.Text, Word: seg.Word}
		if seg.Word != "" {
			span.Status = StatusUnannotated
			if meaning, ok := r.Meanings[seg.Word]; ok {
				span.Status = StatusGlossed
				span.Meaning = meaning
			} else if r.IsKnown(seg.Word) {
				span.Status = StatusKnown
			}
		}
		spans = append(spans, span)
	}
	return spans
}

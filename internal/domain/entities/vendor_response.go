package entities

// VendorResponse is the diarized pre-recorded transcription payload.
// Times are in seconds, as the vendor sends them.
type VendorResponse struct {
	Metadata VendorMetadata `json:"metadata"`
	Results  VendorResults  `json:"results"`
}

// VendorMetadata carries request-level info; only duration is consumed
type VendorMetadata struct {
	RequestID string  `json:"request_id,omitempty"`
	Duration  float64 `json:"duration"`
	Channels  int     `json:"channels,omitempty"`
}

type VendorResults struct {
	Channels   []VendorChannel   `json:"channels"`
	Utterances []VendorUtterance `json:"utterances,omitempty"`
}

type VendorChannel struct {
	Alternatives []VendorAlternative `json:"alternatives"`
}

type VendorAlternative struct {
	Transcript string            `json:"transcript"`
	Confidence float64           `json:"confidence"`
	Words      []VendorWord      `json:"words"`
	Paragraphs *VendorParagraphs `json:"paragraphs,omitempty"`
}

type VendorWord struct {
	Word           string  `json:"word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker,omitempty"`
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
}

type VendorParagraphs struct {
	Transcript string            `json:"transcript"`
	Paragraphs []VendorParagraph `json:"paragraphs"`
}

type VendorParagraph struct {
	Sentences []VendorSentence `json:"sentences"`
	Start     float64          `json:"start"`
	End       float64          `json:"end"`
	NumWords  int              `json:"num_words,omitempty"`
}

type VendorSentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type VendorUtterance struct {
	Start      float64      `json:"start"`
	End        float64      `json:"end"`
	Confidence float64      `json:"confidence"`
	Channel    int          `json:"channel,omitempty"`
	Transcript string       `json:"transcript"`
	Speaker    int          `json:"speaker"`
	Words      []VendorWord `json:"words"`
}

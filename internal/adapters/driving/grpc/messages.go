package grpc

// Wire message types for the detection service. Field order mirrors the
// stable wire contract for Entity; generated protobuf stubs would fix
// these as tag numbers, but without running protoc this package defines
// them as plain Go structs carried over the custom JSON codec registered
// in codec.go.

// entityMessage is the wire representation of domain.Entity.
type entityMessage struct {
	Text      string  `json:"text"`
	Type      string  `json:"type"`
	TypeLabel string  `json:"type_label"`
	Start     int32   `json:"start"`
	End       int32   `json:"end"`
	Score     float32 `json:"score"`
}

// detectRequestMessage is the unary Detect request. The three Enable*
// fields are nil-able per-call overrides for one detector family each:
// absent means "run exactly what the config snapshot says," present
// forces that family on or off for this call only.
type detectRequestMessage struct {
	Text             string  `json:"text"`
	Threshold        float32 `json:"threshold"`
	FetchFreshConfig bool    `json:"fetch_fresh_config"`
	EnablePattern    *bool   `json:"enable_pattern,omitempty"`
	EnableTagger     *bool   `json:"enable_tagger,omitempty"`
	EnableRecognizer *bool   `json:"enable_recognizer,omitempty"`
}

// detectResponseMessage is the unary Detect response.
type detectResponseMessage struct {
	Entities   []entityMessage  `json:"entities"`
	Summary    map[string]int32 `json:"summary"`
	MaskedText string           `json:"masked_text"`
}

// streamDetectRequestMessage is the StreamDetect request.
type streamDetectRequestMessage struct {
	Text      string  `json:"text"`
	Threshold float32 `json:"threshold"`
}

// updateMessage is one item in the StreamDetect response stream.
type updateMessage struct {
	ChunkIndex      int32            `json:"chunk_index"`
	TotalChunks     int32            `json:"total_chunks"`
	ProgressPercent float32          `json:"progress_percent"`
	EntitiesInChunk []entityMessage  `json:"entities_in_chunk"`
	Final           bool             `json:"final"`
	MaskedText      string           `json:"masked_text,omitempty"`
	Summary         map[string]int32 `json:"summary,omitempty"`
}

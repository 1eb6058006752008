package types

import "encoding/json"

// SSE formatting helpers

// SSEPrefix is the Server-Sent Events data prefix.
const SSEPrefix = "data: "

// SSEDone is the final SSE message indicating stream end.
const SSEDone = "data: [DONE]\n\n"

// FormatSSE formats a chunk for Server-Sent Events transmission.
func FormatSSE(data []byte) []byte {
	result := make([]byte, 0, len(SSEPrefix)+len(data)+2)
	result = append(result, SSEPrefix...)
	result = append(result, data...)
	result = append(result, '\n', '\n')
	return result
}

// FormatSSEError renders an in-band error event for a stream whose headers
// have already been committed.
func FormatSSEError(message string) []byte {
	data, err := json.Marshal(NewAPIError(message, ErrorTypeStream))
	if err != nil {
		data = []byte(`{"error":{"message":"stream failed","type":"stream_error"}}`)
	}
	return FormatSSE(data)
}

package httputil

import (
	"fmt"
	"net/http"
)

// AddServerTiming appends query timings to the Server-Timing header.
// kv: [][2]string{{"aggregate","12.3"}, {"rank","2.0"}}
func AddServerTiming(w http.ResponseWriter, kv ...[2]string) {
	if len(kv) == 0 {
		return
	}
	val := ""
	for i, p := range kv {
		if i > 0 {
			val += ", "
		}
		val += fmt.Sprintf("%s;dur=%s", p[0], p[1])
	}
	// Additive header (can call multiple times if you want)
	w.Header().Add("Server-Timing", val)
}

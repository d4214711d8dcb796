package benchmark

import (
	"bytes"
	"sync"
)

// bufPool reuses the in-memory buffers download bodies are read into.
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// maxPooledBuffer keeps very large bodies from pinning memory in the pool.
const maxPooledBuffer = 64 << 20

func getBuffer() *bytes.Buffer {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufPool.Put(buf)
}

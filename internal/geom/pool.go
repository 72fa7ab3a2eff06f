package geom

import "sync"

type pieceBuffer struct {
	items []piece
}

// piecePool recycles overlay scratch space between offsets; batch runs
// offset many polygons concurrently.
var piecePool = sync.Pool{
	New: func() interface{} {
		return &pieceBuffer{items: make([]piece, 0, 512)}
	},
}

func getPieces() *pieceBuffer {
	return piecePool.Get().(*pieceBuffer)
}

func putPieces(b *pieceBuffer) {
	b.items = b.items[:0]
	piecePool.Put(b)
}

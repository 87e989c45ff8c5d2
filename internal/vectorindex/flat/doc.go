// Package flat provides an exhaustive nearest-neighbour index over
// fixed-dimension float32 vectors, ranked by squared Euclidean distance.
//
// Each vector is stored with the chunk of text it embeds; positions in
// the vector list and the chunk list always agree. The index is
// append-only.
package flat

// Package field implements the structural clip transforms the repair stages
// are composed from: field separation and weaving, frame selection,
// interleaving, plane shuffling, multi-radius dilation and erosion, and
// adapters that lift the per-frame kernels into clips.
//
// Field order is top field first throughout.
package field

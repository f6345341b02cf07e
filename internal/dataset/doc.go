// Package dataset exports generated samples to standard object
// detection dataset layouts.
//
// An Exporter loads the annotations file written during generation and
// re-emits the samples in one of three formats:
//
//   - COCO: one directory per subset holding the images next to an
//     annotations.json in COCO object detection form.
//   - YOLO: parallel images/ and labels/ trees with one normalized
//     label line per sample, plus a data.yaml manifest when splitting.
//   - CreateML: one directory per subset holding the images next to a
//     CreateML-style annotations.json.
//
// Image files are copied byte for byte, never re-encoded. Splitting
// shuffles the records and partitions them by the configured ratios;
// the shuffle order comes from the Exporter's random source, so two
// exporters built from the same seed produce the same partition.
package dataset

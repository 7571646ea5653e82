// Package repository defines the output sink a run's results may be written to.
//
// # SQLite Implementation
//
// The sqlite subpackage stores one run per file: the run header, the
// per-domain resolution results, every host outcome and the flat
// permission table. An existing file is replaced, so a file never mixes
// two runs.
package repository

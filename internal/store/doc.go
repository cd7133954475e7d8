// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic: the answer and progress services depend
// only on ProgressStore and QuestionStore, and the memory, postgres and
// redis platform packages provide interchangeable implementations.
package store

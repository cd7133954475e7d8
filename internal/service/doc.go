// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// Each use case lives in its own subpackage:
//
//   - answer: judges a submission and records its outcome on the ring
//   - progress: reads a learner's ring for a stack
//   - auth: validates bearer credentials
//
// Services receive their dependencies through constructor injection and never
// depend on a specific store implementation. Unexpected failures are wrapped
// in ServiceError; expected conditions are reported with sentinel errors from
// the domain and store packages so the API layer can map them to status codes.
package service

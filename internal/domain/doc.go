// Package domain contains the core business entities, value objects, and
// domain logic of the application: stacks, the questions they own, the match
// rules that decide whether free-text answers are correct, and the per-user
// progress records aggregated from submissions. It is independent of any
// specific infrastructure or delivery mechanism.
package domain

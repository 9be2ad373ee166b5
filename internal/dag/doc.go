// Package dag keeps the dependency structure of a module graph. Nodes are
// module instance names and an edge points from a producer to the consumer
// that calls it, so a topological order creates producers first and a
// reversed one releases consumers first.
package dag

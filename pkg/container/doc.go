// Package container implements the entity state container: a client-side
// cache of one entity collection and one focused entity, kept in step with a
// REST resource.
//
// A Container is instantiated once per entity type from a Spec (name and
// identity function) and a Transport (the REST calls). Every operation moves
// the container through Idle -> Pending -> Settled and publishes each state
// change to observers. Writes that succeed chain one follow-up List so the
// collection view stays consistent. Reset returns to the initial state at
// any time and drops responses that land afterwards.
//
// Responses are sequenced per container: under LatestWins (the default) a
// settled read whose request has been superseded by a newer one is
// discarded; under ArrivalOrder every response is applied as it lands.
// Writes always land unless a Reset intervened.
package container

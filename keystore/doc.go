// Package keystore holds named JSON Web Key Sets and picks individual keys out of them.
//
// A set can be handed to the engine inline or referenced by name through a
// [Repository]. Two repositories ship with the package: [MemoryRepository] for tests and
// single-process hosts, and [RedisRepository] for hosts that share sets between
// replicas.
//
// Key selection follows the token header: kid first, then alg, then the first key whose
// type admits the algorithm.
//
// # What this package must NOT do
//
//   - Generate or rotate keys.
//   - Fetch sets over the network.
package keystore

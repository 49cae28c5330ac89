/*
Package ports defines the driven ports (interfaces) of the dependents engine.

These interfaces decouple graph evaluation from the systems that hold
externally supplied values, so the same graph can be fed from memory, Redis
or anything else that implements the contract.

# Key Interfaces

  - ValueSource: Provides values for datasource and lookup nodes by key.
*/
package ports

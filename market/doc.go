// Package market defines the provider-neutral domain model: market
// statistics with a canonical nested pricing block, property search results,
// location query parsing, and the validation gate every record must pass
// before it is trusted or cached.
package market

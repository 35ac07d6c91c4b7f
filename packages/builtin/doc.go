// Package builtin implements the $-prefixed system functions available in
// placeholders: $guid, $randomInt, $timestamp, $datetime, $localDatetime,
// $processEnv and $dotenv. The clock and random source are injectable so
// tests can pin otherwise non-deterministic output.
package builtin

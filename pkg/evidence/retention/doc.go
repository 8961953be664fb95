// Package retention prunes aged evidence records on a schedule.
package retention

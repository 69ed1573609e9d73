// Package influxdb provides the InfluxDB v2 connection used to keep a
// history of saved registry values.
//
// Writes are batched through the blocking write API so a save can flush at
// its end and see every error. Reads use Flux through Query.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.Storage.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WritePoints(ctx, point)
//	err = client.Flush(ctx)
package influxdb

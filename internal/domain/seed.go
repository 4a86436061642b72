package domain

// SeedRecords returns the built-in dataset: three records around London,
// one each in Israel, New York and Sydney.
func SeedRecords() []RawRecord {
	return []RawRecord{
		{Timestamp: "4/3/2025  1:14:36 AM", Name: "Cofwefwsfee", Code: "2314513234", Lat: 32.693748, Lon: 35.298947},
		{Timestamp: "4/2/2025  12:24:27 PM", Name: "Coffee", Code: "2314513234", Lat: 51.505, Lon: -0.09},
		{Timestamp: "4/1/2025  8:38:46 PM", Name: "Coffwee", Code: "2314513234", Lat: 51.51, Lon: -0.1},
		{Timestamp: "3/31/2025  12:41:08 PM", Name: "Coffefwe", Code: "2314513234", Lat: 40.7128, Lon: -74.0060},
		{Timestamp: "4/3/2025  12:10:25 AM", Name: "Coffdwsfee", Code: "2314513234", Lat: -33.8688, Lon: 151.2093},
		{Timestamp: "3/31/2025  9:00:37 PM", Name: "Coffefeae", Code: "2314513234", Lat: 51.500, Lon: -0.11},
	}
}

/*Package keithley contains drivers for the Keithley instruments on the
bench: the model 236 source-measure unit, the model 617 electrometer,
the model 2400 SourceMeter, and the model 500 serial-GPIB converter that
fronts the older two.

The 236 and 617 speak the pre-SCPI "device-dependent command" language:
single letters with numeric parameters, buffered until an X executes
them.  The drivers keep the instrument manuals' option names as map
keys, so configuration reads the way the front panel does.
*/
package keithley

// bus is the capability the GPIB instruments need from a controller.
// gpib.Controller satisfies it.
type bus interface {
	Command(format string, a ...interface{}) error
	Query(cmd string) (string, error)
}

package rate

import "time"

// Buckets es el estado de rate limit que vive dentro de la sesión: por cada key,
// los timestamps (unix segundos) de los intentos aceptados, en orden.
type Buckets map[string][]int64

// Check aplica una ventana deslizante: descarta los timestamps <= now-window,
// rechaza sin registrar si quedan max o más, y si no registra now y acepta.
// Un bucket nunca supera max entradas.
func (b Buckets) Check(key string, max int, window time.Duration, now time.Time) bool {
	if max <= 0 {
		return false
	}
	ts := prune(b[key], now.Unix()-int64(window/time.Second))
	if len(ts) >= max {
		b.store(key, ts)
		return false
	}
	b[key] = append(ts, now.Unix())
	return true
}

// Count devuelve cuántos intentos siguen dentro de la ventana, sin registrar.
func (b Buckets) Count(key string, window time.Duration, now time.Time) int {
	return len(prune(b[key], now.Unix()-int64(window/time.Second)))
}

// RetryAfter estima cuánto falta para que se libere un lugar en key.
func (b Buckets) RetryAfter(key string, window time.Duration, now time.Time) time.Duration {
	ts := prune(b[key], now.Unix()-int64(window/time.Second))
	if len(ts) == 0 {
		return 0
	}
	d := time.Duration(ts[0]-now.Unix())*time.Second + window
	if d < 0 {
		return 0
	}
	return d
}

// Reset borra el bucket de key.
func (b Buckets) Reset(key string) {
	delete(b, key)
}

func (b Buckets) store(key string, ts []int64) {
	if len(ts) == 0 {
		delete(b, key)
		return
	}
	b[key] = ts
}

// prune se queda con los timestamps estrictamente mayores a cutoff.
// Los timestamps están ordenados, así que alcanza con buscar el primer vigente.
func prune(ts []int64, cutoff int64) []int64 {
	i := 0
	for i < len(ts) && ts[i] <= cutoff {
		i++
	}
	if i == 0 {
		return ts
	}
	out := make([]int64, len(ts)-i)
	copy(out, ts[i:])
	return out
}
